// Package fetch loads pages over plain HTTP for sites that do not need a real
// browser.
package fetch
