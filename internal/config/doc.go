// Package config loads and saves LexiForge settings. Values come from
// $HOME/.lexiforge.yaml (or --config), LEXIFORGE_* environment variables and
// a .env file, in increasing order of precedence for the environment.
package config
