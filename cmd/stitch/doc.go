// Command stitch downloads a list of video clips, normalizes each clip's
// audio to one shared AAC profile, joins them with stream-copy
// concatenation, and writes the stitched result to the output directory.
package main
