// Package config defines the alarm clock settings shared by alarmd and
// alarmctl and provides helpers to load, validate and save them in YAML.
package config
