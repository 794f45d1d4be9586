// Package batch reads word lists for non-interactive enrichment.
package batch
