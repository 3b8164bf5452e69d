// Package surface builds the strategic watch-lists derived from the scores:
//
//   - [MaintenanceDebt]: critical, concentrated, slowing repositories that
//     are likely to fail silently
//   - [Keystone]: contributors whose departure would hit several critical
//     repositories at once
//   - [FundingEfficiency]: structural importance compared with funding
//     received, per project
//
// Every function is pure: it reads the active graph and the score maps and
// returns sorted entries. Narrative text is attached by package narrative.
package surface
