// Package models lists the generative models available to an API key so
// the user can pick one for definitions and stories.
package models
