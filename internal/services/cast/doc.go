// Package cast wraps the go-chromecast application client for one-shot
// media playback on a known device.
package cast
