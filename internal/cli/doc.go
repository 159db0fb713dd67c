// Package cli implements the emercury-send command.
package cli
