// Package ir provides the intermediate representation shared by every rkc
// package: expression trees, temperature conditions, phases, parameter
// records and parameter queries.
//
// This package contains type definitions and pure tree transforms only. All
// other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Node and Condition are sealed; only types in this package implement them
//   - Nodes are immutable once built, so subtrees may be shared freely
//   - The only reserved symbols are Pressure ("P") and Temperature ("T")
//   - Species and phase names are NFC-normalised upper case (see Normalize)
//   - All JSON tags use snake_case
package ir
