// Package ir provides the domain value types shared by the paper search
// packages.
//
// This package contains type definitions and small parsing helpers only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps ir the foundational layer with no circular dependencies.
//
// Key types:
//   - PaperRow: one row returned by the planned search query, with the
//     projected columns the query asked for
//   - ReviewInfo: one review decoded from a row's review signatures
//   - Contact: a user of the conference (PC member, chair, author, reviewer)
//   - Conf: a read-only snapshot of the conference settings consulted by
//     search (decisions, named searches, tag annotations, rounds)
//   - IRValue: sealed value type used for term annotations ("floats")
//
// Key design constraints:
//   - Tag values are float64, matching the PaperTag.tagIndex column
//   - IRValue never carries floats, so annotation output is deterministic
//   - All JSON tags use snake_case
package ir
