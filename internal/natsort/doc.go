// Package natsort orders strings with embedded digit runs compared
// numerically, so "page2" sorts before "page10". Archive page listings
// rely on this to match the order authors intended.
package natsort
