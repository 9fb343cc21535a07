// Package config defines the format-agnostic project model: the scene a run
// starts from and the event list evaluated every tick, along with the Loader
// interface implemented by concrete formats such as HCL.
package config
