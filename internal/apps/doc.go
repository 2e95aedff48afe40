// Package apps describes the virtual training platforms whose activity
// files the tool rewrites, including where each platform stores them on
// the local machine.
package apps
