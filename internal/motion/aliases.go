// Package motion exports canonical angle measurements as motion-clip JSON
// for the 3D viewer, and maintains the clip index the viewer loads.
//
// This is a thin consumer of the canonical store: it reads the persisted
// rows, never the inbox, and has no invariants of its own beyond name
// mapping. Joint names arriving from upstream tools are normalized through
// an alias table and then mapped to the Mixamo/Xbot skeleton's bone names.
package motion

import "strings"

// jointAliases maps upstream joint spellings (case and punctuation
// variants included) to normalized joint keys.
var jointAliases = map[string]string{
	"hip": "hips", "hips": "hips", "pelvis": "hips",

	"rightupleg": "right_up_leg", "rightleg": "right_leg", "rightfoot": "right_foot",
	"leftupleg": "left_up_leg", "leftleg": "left_leg", "leftfoot": "left_foot",

	"rightshoulder": "right_shoulder", "rightarm": "right_arm",
	"rightforearm": "right_fore_arm", "righthand": "right_hand",
	"leftshoulder": "left_shoulder", "leftarm": "left_arm",
	"leftforearm": "left_fore_arm", "lefthand": "left_hand",

	"spine": "spine", "spine1": "spine1", "spine2": "spine2",
	"neck": "neck", "head": "head",
}

// boneNames maps normalized joint keys to the Xbot (Mixamo) skeleton's
// actual bone names.
var boneNames = map[string]string{
	"hips":   "mixamorigHips",
	"spine":  "mixamorigSpine",
	"spine1": "mixamorigSpine1",
	"spine2": "mixamorigSpine2",
	"neck":   "mixamorigNeck",
	"head":   "mixamorigHead",

	"right_up_leg": "mixamorigRightUpLeg",
	"right_leg":    "mixamorigRightLeg",
	"right_foot":   "mixamorigRightFoot",
	"left_up_leg":  "mixamorigLeftUpLeg",
	"left_leg":     "mixamorigLeftLeg",
	"left_foot":    "mixamorigLeftFoot",

	"right_shoulder": "mixamorigRightShoulder",
	"right_arm":      "mixamorigRightArm",
	"right_fore_arm": "mixamorigRightForeArm",
	"right_hand":     "mixamorigRightHand",
	"left_shoulder":  "mixamorigLeftShoulder",
	"left_arm":       "mixamorigLeftArm",
	"left_fore_arm":  "mixamorigLeftForeArm",
	"left_hand":      "mixamorigLeftHand",
}

// CanonJoint normalizes an upstream joint name to its joint key. Unknown
// names fold to lowercase rather than failing; the exporter reports them
// as unmapped instead of dropping data silently.
func CanonJoint(name string) string {
	k := strings.TrimSpace(name)
	if k == "" {
		return k
	}
	// Some tools emit namespaced names like "mixamorig:Hips".
	k = strings.ToLower(strings.ReplaceAll(k, ":", ""))
	k = strings.TrimPrefix(k, "mixamorig")
	if alias, ok := jointAliases[k]; ok {
		return alias
	}
	return k
}

// BoneName maps a joint key to its skeleton bone name. The second return
// is false for joints outside the skeleton.
func BoneName(jointKey string) (string, bool) {
	bone, ok := boneNames[jointKey]
	return bone, ok
}
