// Package fields contains the form's input components. Each one is controlled:
// it is handed the current canonical value and callbacks, keeps only local
// display state, and reports values already normalized for the controller.
package fields
