// Package story generates short reading-practice stories from words the
// user has studied. Requests are routed by language, CEFR level and length
// to a prompt variant, the model reply is cleaned of language-detection
// chatter and can be rendered as HTML with the studied words in bold.
package story
