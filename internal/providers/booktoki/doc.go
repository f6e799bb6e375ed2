// Package booktoki discovers and extracts episodes from booktoki-style novel
// listings. Listing pages are addressed with a spage query parameter and list
// episodes newest first. All selectors are data and can be overridden.
package booktoki
