// Package host provides sound.Host implementations: DeviceHost plays
// attached nodes through the system audio device via oto, and MockHost
// records host interactions for deterministic tests.
package host
