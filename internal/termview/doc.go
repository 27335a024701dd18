// Package termview is the terminal front end of the projektor command.
//
// It provides a projektor.Presenter that renders the status bar as a line
// of text and can compose the whole window (page view and status bar) into
// an image, a decoder for terminal key sequences, and a Session that maps
// keys onto viewer commands.
package termview
