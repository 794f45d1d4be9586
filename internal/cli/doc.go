// Package cli builds the lexiforge command tree. It handles flag parsing,
// configuration loading through viper and dispatch to the processor.
package cli
