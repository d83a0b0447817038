// Command longbox is the comic library CLI and daemon entry point.
package main
