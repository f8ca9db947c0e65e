// Package harness runs conformance scenarios against the screens.
//
// A scenario starts one screen with scripted capabilities, dispatches a flow
// of actions by name, then asserts on the recorded trace and the final state.
//
// # Scenario Format
//
//	name: take_photo
//	description: "A resolved camera photo replaces the image"
//	app: image_selection
//	static_image: 1
//	capabilities:
//	  camera:
//	    - canceled: true
//	    - uri: "file:///x.jpg"
//	flow:
//	  - dispatch: takePhotoFromCamera
//	    expect: { accepted: true, changed: false }
//	  - dispatch: selectResizeMode
//	    args: [cover]
//	  - teardown: true
//	assertions:
//	  - type: trace_order
//	    actions: [takePhotoFromCamera, updatePhoto]
//	  - type: final_state
//	    path: image.uri
//	    equals: "file:///x.jpg"
//
// # Assertion Types
//
//   - trace_contains: a dispatch of action (with exactly args, if given)
//   - trace_order: actions dispatched in this order, gaps allowed
//   - trace_count: action dispatched exactly count times
//   - final_state: the gjson path into the canonical snapshot equals a value
//   - notification_count: observers were notified exactly count times
//   - effect_errors: count failed or refused effects, optionally one whose
//     error contains a substring
//
// # Deterministic Testing
//
// Every run uses a fixed session id (scenario.session or
// testutil.DefaultSession), a fresh testutil.DeterministicClock and an
// in-memory journal, and waits for effects after each step. Traces are
// therefore identical across runs and can be compared with golden files.
//
// # Validation
//
// LoadScenario decodes strictly (unknown fields are errors), checks required
// fields and decodes every dispatch against the screen's action set, then
// validates the document against the embedded CUE schema.
package harness
