// Package lemma offers local dictionary-form hints that are added to the
// definition prompt. Japanese is analysed with the kagome morphological
// analyser; other languages get no hint and rely on the model alone.
package lemma
