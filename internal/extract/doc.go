// Package extract turns cleaned documents into structured data.
//
// Content, CompanyName, Description and SocialLinks describe the site
// as a whole and run on the seed page. Contact, Team, Products and News
// are entity extractors; Page runs the ones matching a page's labels.
// Every entity extractor returns (T, error) and never panics past its
// boundary: failures come back as *ExtractionError.
package extract
