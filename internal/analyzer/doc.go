// Package analyzer derives consistency checks from verified link records.
//
// Six rules run on every record. Each rule has a guard and a comparison:
// the comparison only runs when the guard holds, so a check is present on a
// record exactly when its operands are. Failed checks are reported as
// model.Diagnostic values in addition to being stored on the record.
//
// Rules are registered on an Analyzer in a fixed order. Additional rules can
// be registered with Register.
package analyzer
