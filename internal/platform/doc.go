// Package platform connects to the managed Firebase platform.
package platform
