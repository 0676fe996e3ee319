// Package pose composes rigid camera transforms for the XR device.
//
// Matrices are column-major 4x4 float32 arrays (m[col*4+row]), the layout
// WebGL and the tracking bridge both use. Orientations are unit quaternions
// stored as [x, y, z, w].
//
// A model matrix moves a point from head space into world space. Its inverse,
// the eye view matrix, is what a renderer multiplies geometry by. Because a
// pose is always rotation plus translation, EyeView inverts it with a
// transpose and a negated translation instead of a general 4x4 inverse.
package pose
