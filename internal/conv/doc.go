// Package conv provides checked integer conversions for arena handles.
//
// Node stores and the value array address their elements by uint32 handles
// derived from slice lengths. These helpers turn a length that no longer
// fits into a panic with a descriptive error instead of a silent wrap.
package conv
