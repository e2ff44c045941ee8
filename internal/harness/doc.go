// Package harness provides scenario testing for the IDL transform pipeline.
//
// A scenario names an input IDL document, runs it through the full pipeline,
// and checks assertions against the transformed output. The rendered output
// can also be compared against a golden file.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: campaign_account
//	description: "Campaign account absorbs its type definition"
//	input: inputs/clubhouse.json   # relative to the scenario file
//	assertions:
//	  - type: equals
//	    path: accounts.0.type.kind
//	    value: struct
//	  - type: absent
//	    path: accounts.3.type
//	  - type: count
//	    path: accounts
//	    count: 4
//
// # Assertion Types
//
//   - equals: the value at path equals value (object key order ignored)
//   - present: path resolves to a value
//   - absent: path does not resolve
//   - count: the array at path has exactly count elements
//
// Paths are dot-separated object keys and array indices. The empty path
// addresses the document root.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/merge.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
