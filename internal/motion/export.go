package motion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/motionforge/motionstore/internal/frame"
)

// Clip is one exported motion clip: per-bone angle tracks sampled on a
// shared, sorted timeline.
type Clip struct {
	Label    string    `json:"label"`
	Session  string    `json:"session_id,omitempty"`
	Activity string    `json:"activity,omitempty"`
	Unit     string    `json:"unit"`
	Times    []float64 `json:"times"`
	Tracks   []Track   `json:"tracks"`

	// Unmapped lists joint keys with no skeleton bone; their samples are
	// still exported under the raw key so nothing is dropped.
	Unmapped []string `json:"unmapped_joints,omitempty"`
}

// Track is one bone's values aligned with the clip's Times. Samples with
// no measurement at a timestamp are NaN-free: absent samples repeat the
// previous value, and leading gaps repeat the first.
type Track struct {
	Bone   string    `json:"bone"`
	Joint  string    `json:"joint"`
	Values []float64 `json:"values"`
}

// Export groups the store's angle rows by (session, activity) and writes
// one clip JSON per group into outDir. Returns the written filenames in
// deterministic order. When session is non-empty only that session's
// groups are exported.
func Export(rows []frame.Row, outDir, session string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	groups := map[string][]frame.Record{}
	for _, row := range rows {
		rec := frame.RecordFromRow(row)
		if !strings.EqualFold(rec.Metric, "angle") {
			continue
		}
		if session != "" && rec.SessionID != session {
			continue
		}
		key := rec.SessionID + "\x1f" + rec.Activity
		groups[key] = append(groups[key], rec)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var written []string
	for _, key := range keys {
		clip, err := buildClip(groups[key])
		if err != nil {
			return written, err
		}
		name := clipFilename(clip)
		data, err := json.MarshalIndent(clip, "", "  ")
		if err != nil {
			return written, fmt.Errorf("encoding clip %q: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(outDir, name), append(data, '\n'), 0o644); err != nil {
			return written, fmt.Errorf("writing clip %q: %w", name, err)
		}
		written = append(written, name)
	}
	return written, nil
}

func buildClip(recs []frame.Record) (Clip, error) {
	clip := Clip{
		Session:  recs[0].SessionID,
		Activity: recs[0].Activity,
		Unit:     "deg",
	}
	clip.Label = clipLabel(clip.Session, clip.Activity)

	timeSet := map[float64]bool{}
	type sample struct{ t, v float64 }
	perJoint := map[string][]sample{}
	for _, rec := range recs {
		t, err := rec.TimestampNumber()
		if err != nil {
			return Clip{}, fmt.Errorf("clip %q: timestamp %w", clip.Label, err)
		}
		v, err := rec.ValueNumber()
		if err != nil {
			return Clip{}, fmt.Errorf("clip %q: %w", clip.Label, err)
		}
		joint := CanonJoint(rec.Joint)
		timeSet[t] = true
		perJoint[joint] = append(perJoint[joint], sample{t, v})
	}

	clip.Times = make([]float64, 0, len(timeSet))
	for t := range timeSet {
		clip.Times = append(clip.Times, t)
	}
	sort.Float64s(clip.Times)

	joints := make([]string, 0, len(perJoint))
	for j := range perJoint {
		joints = append(joints, j)
	}
	sort.Strings(joints)

	for _, joint := range joints {
		samples := perJoint[joint]
		sort.Slice(samples, func(i, k int) bool { return samples[i].t < samples[k].t })
		at := map[float64]float64{}
		for _, s := range samples {
			at[s.t] = s.v // last sample at a timestamp wins, matching merge order
		}

		bone, ok := BoneName(joint)
		if !ok {
			bone = joint
			clip.Unmapped = append(clip.Unmapped, joint)
		}
		track := Track{Bone: bone, Joint: joint, Values: make([]float64, len(clip.Times))}
		current := samples[0].v
		for i, t := range clip.Times {
			if v, ok := at[t]; ok {
				current = v
			}
			track.Values[i] = current
		}
		clip.Tracks = append(clip.Tracks, track)
	}
	return clip, nil
}

func clipLabel(session, activity string) string {
	switch {
	case session == "" && activity == "":
		return "clip"
	case session == "":
		return activity
	case activity == "":
		return session
	default:
		return session + "_" + activity
	}
}

func clipFilename(clip Clip) string {
	label := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, clip.Label)
	return label + ".json"
}
