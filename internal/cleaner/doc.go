// Package cleaner removes navigation, advertising and consent noise from
// HTML pages before text and entity extraction.
//
// Cleaning happens at two levels. Clean removes noise elements from the
// DOM using structural selectors and class/id/role keywords while never
// touching content containers such as <main> or <article>. CleanText
// then removes leftover UI lines and boilerplate phrases from the
// extracted text.
package cleaner
