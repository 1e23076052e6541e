// Package harness runs input scenarios: scripted ticks of device input
// against a bindings file, with expectations on which conditions fire.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: jump_then_double_jump
//	description: "A second press within the cooldown does nothing"
//	bindings: ../bindings/platformer.yaml
//	tick_ms: 16
//	steps:
//	  - press: [keyboard.space]
//	    expect_fired: [jump]
//	  - release: [keyboard.space]
//	    expect_nothing: true
//	  - at_ms: 100
//	    press: [keyboard.space]
//	    expect_not_fired: [double_jump]
//	  - set: { gamepad.left_stick: { x: 0.9, y: 0.0 } }
//	    repeat: 3
//	assertions:
//	  - type: fired_count
//	    condition: jump
//	    count: 2
//	  - type: fire_order
//	    conditions: [jump, sprint]
//	  - type: never_fired
//	    condition: fire
//
// Each step is one tick (plus repeat extra ticks). Inputs are keyed
// "source.signal" and staged before the tick; releases are staged before
// presses. Step expectations are checked against the step's last tick.
//
// # Assertion Types
//
//   - fired_count: the condition fired exactly N times over the run
//   - fire_order: the conditions first fired in the given order
//   - never_fired: the condition never fired
//
// # Deterministic Testing
//
// Every run uses a manual clock starting at testutil.Epoch, manual focus
// starting focused, and sequential event IDs ("evt-1", "evt-2", ...), so
// traces compare byte-for-byte against golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/jump.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
