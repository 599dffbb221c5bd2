// Package ffmpeg implements the stream introspection and frame extraction
// capabilities on top of the ffprobe and ffmpeg binaries.
//
// Every process is started in its own process group and killed as a group
// when its context ends. A stuck decoder therefore never outlives the stage
// timeout that started it.
package ffmpeg
