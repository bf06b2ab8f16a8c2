// Package core holds the pieces shared by the mmv packages: the generative
// signal model, the error categories used across the recovery pipeline, and
// small scratch-buffer helpers.
package core
