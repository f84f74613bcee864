// Package store provides SQLite-backed storage for parameter databases and
// compiled mixing terms.
//
// Three tables:
//   - phases: sublattice models, keyed by name
//   - parameters: parameter records, keyed by their content hash
//   - compiled_terms: compiled matrices, keyed by assembly key
//
// # Patterns
//
// Content-addressed records
//   - A parameter's id is ir.ParameterID, so re-importing a database is a
//     no-op and two imports of the same record never duplicate it
//   - A compiled term is keyed by ir.AssemblyKey, which changes whenever any
//     input of the assembly changes; stale entries are never read
//
// Logical time
//   - All ordering uses seq INTEGER (logical clock), never timestamps
//   - Queries include ORDER BY seq ASC, id ASC COLLATE BINARY
//
// Store satisfies both assembler.ParameterSource and assembler.Cache.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
