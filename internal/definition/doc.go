// Package definition asks a generative model for the base form, a
// definition and an example sentence of a word. It builds the prompt from
// a template, sends it through an ai.TextGenerator and parses the reply
// into a Result, rejecting anything that lacks one of the three fields.
package definition
