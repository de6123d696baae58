// Package v1 contains the sensor-standard message types exchanged with remote
// devices, together with their validation rules and the tagged-variant merge
// used to accumulate status fragments.
//
// Optional scalar fields are pointers so that "not reported" can be told apart
// from a zero value.
package v1
