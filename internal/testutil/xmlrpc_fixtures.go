// Package testutil provides XML-RPC response fixtures for catalog client and
// pipeline tests.
package testutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// SearchHitFixture describes one subtitle record in a search response.
type SearchHitFixture struct {
	MovieHash string
	ID        string
	Format    string
	Rating    string
	Language  string
}

// LoginResponse builds a successful LogIn response. contentLocation is
// omitted when empty.
func LoginResponse(token, contentLocation string) string {
	var data string
	if contentLocation != "" {
		data = fmt.Sprintf(`<member><name>data</name><value><struct>
  <member><name>Content-Location</name><value><string>%s</string></value></member>
</struct></value></member>`, contentLocation)
	}
	return responseDocument(fmt.Sprintf(`
<member><name>status</name><value><string>200 OK</string></value></member>
<member><name>token</name><value><string>%s</string></value></member>
%s`, token, data))
}

// SearchResponse builds a SearchSubtitles response carrying the given hits.
func SearchResponse(hits []SearchHitFixture) string {
	var values strings.Builder
	for _, hit := range hits {
		fmt.Fprintf(&values, `<value><struct>
<member><name>MovieHash</name><value><string>%s</string></value></member>
<member><name>IDSubtitleFile</name><value><string>%s</string></value></member>
<member><name>SubFormat</name><value><string>%s</string></value></member>
<member><name>SubRating</name><value><string>%s</string></value></member>
<member><name>SubLanguageID</name><value><string>%s</string></value></member>
</struct></value>`, hit.MovieHash, hit.ID, hit.Format, hit.Rating, hit.Language)
	}
	return responseDocument(fmt.Sprintf(`
<member><name>status</name><value><string>200 OK</string></value></member>
<member><name>data</name><value><array><data>%s</data></array></value></member>`, values.String()))
}

// EmptySearchResponse builds a search response with no results; the catalog
// reports those as a boolean false data member.
func EmptySearchResponse() string {
	return responseDocument(`
<member><name>status</name><value><string>200 OK</string></value></member>
<member><name>data</name><value><boolean>0</boolean></value></member>`)
}

// DownloadResponse builds a DownloadSubtitles response mapping subtitle ids
// to transport-encoded payloads.
func DownloadResponse(payloads map[string]string) string {
	var values strings.Builder
	for id, payload := range payloads {
		fmt.Fprintf(&values, `<value><struct>
<member><name>idsubtitlefile</name><value><string>%s</string></value></member>
<member><name>data</name><value><string>%s</string></value></member>
</struct></value>`, id, payload)
	}
	return responseDocument(fmt.Sprintf(`
<member><name>status</name><value><string>200 OK</string></value></member>
<member><name>data</name><value><array><data>%s</data></array></value></member>`, values.String()))
}

// StatusResponse builds a response carrying only a status member.
func StatusResponse(status string) string {
	return responseDocument(fmt.Sprintf(`
<member><name>status</name><value><string>%s</string></value></member>`, status))
}

// NoStatusResponse builds a response missing the mandatory status member.
func NoStatusResponse() string {
	return responseDocument(`
<member><name>token</name><value><string>tok</string></value></member>`)
}

// EncodeSubtitlePayload applies the transport encoding (gzip, then base64)
// to raw subtitle bytes, producing what the catalog ships in download
// responses.
func EncodeSubtitlePayload(content []byte) string {
	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(content); err != nil {
		panic(err)
	}
	if err := gz.Close(); err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(compressed.Bytes())
}

func responseDocument(members string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<methodResponse><params><param><value><struct>%s</struct></value></param></params></methodResponse>`, members)
}
