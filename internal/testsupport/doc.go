// Package testsupport provides shared test fixtures: a scripted fake media
// engine, temp-dir configs, and sample artifact helpers.
package testsupport
