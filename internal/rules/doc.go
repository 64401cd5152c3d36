// Package rules implements provider detection and the rule-driven
// normalization pipeline that turns raw tabular frames into canonical
// measurement frames.
//
// Configuration is YAML, validated against an embedded CUE schema when
// loaded so structural mistakes fail before any file is touched. A
// provider rule is applied in a fixed step order:
//
//	reshape → feature extraction → rename → set → derive →
//	default-fill → required check → projection
//
// Providers are declared as an ordered list, and detection walks that
// order: headers matching several providers always resolve to the first
// declared. That ordering is semantic, which is why providers are a list
// and not a map.
//
// Derived columns use the restricted arithmetic grammar in internal/expr.
// Formulas are compiled at configuration load; evaluation sees only the
// row's own columns.
package rules
