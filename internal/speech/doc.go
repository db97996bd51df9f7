// Package speech turns short texts into Japanese TTS audio and plays them
// on the household cast device, with a nightly quiet window.
package speech
