// Package harness runs paper search scenarios against a fresh store.
//
// A scenario loads a fixture and conference settings, applies tag
// assignments, runs searches as different users and checks the results.
// Every assignment and search is recorded in a trace that can be compared
// against a golden file.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: tag_order
//	description: "nexttag appends papers to an ordered tag"
//	fixture: conference.yaml
//	conf: conference.cue
//	setup:
//	  - as: chair@example.org
//	    assign: |
//	      paper,tag
//	      1,fart#4
//	flow:
//	  - as: chair@example.org
//	    q: "order:fart"
//	    t: s
//	    sorted: true
//	    expect:
//	      ids: [1]
//	assertions:
//	  - type: tag_values
//	    tag: fart
//	    values: {1: 4}
//
// Fixture and settings paths are relative to the scenario file. A flow
// step without "as" searches as an anonymous visitor. A flow step with
// "assign" instead of "q" applies a batch between searches.
//
// # Assertion Types
//
//   - trace_contains: some search ran query q
//   - trace_count: exactly count events of the given event type
//   - result_order: every search for q returned ids, in order
//   - tag_values: after the flow, tag has exactly values
package harness
