// Package epub assembles synthesized documents into an EPUB 2 archive and
// checks archives for internal consistency.
package epub

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Fixed archive layout.
const (
	MimetypeName   = "mimetype"
	ContainerName  = "META-INF/container.xml"
	PackageName    = "content.opf"
	NCXName        = "toc.ncx"
	StylesheetName = "Styles/Style.css"
	ContentDir     = "OEBPS/"
)

// Media types.
const (
	Mimetype         = "application/epub+zip"
	MediaTypeOPF     = "application/oebps-package+xml"
	MediaTypeXHTML   = "application/xhtml+xml"
	MediaTypeCSS     = "text/css"
	MediaTypeNCX     = "application/x-dtbncx+xml"
	nsDC             = "http://purl.org/dc/elements/1.1/"
	uniqueIdentifier = "BookId"
)

// Item is a manifest entry. Href is relative to the package document.
type Item struct {
	ID        string `json:"id"`
	Href      string `json:"href"`
	MediaType string `json:"media_type"`
}

// NavPoint is a table of contents entry. Src is relative to the NCX
// document. Play order follows slice position, starting at 1.
type NavPoint struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Src   string `json:"src"`
}

// Package is the publication model shared by the package document and the
// NCX.
type Package struct {
	Identifier string     `json:"identifier"`
	Title      string     `json:"title"`
	Creator    string     `json:"creator,omitempty"`
	Language   string     `json:"language"`
	Items      []Item     `json:"items"`
	Spine      []string   `json:"spine"` // item IDs in reading order
	TOC        string     `json:"toc"`   // item ID of the NCX
	Nav        []NavPoint `json:"nav"`
}

// Item returns the manifest item with the given ID.
func (p *Package) Item(id string) (Item, bool) {
	for _, it := range p.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

type container struct {
	XMLName   xml.Name   `xml:"urn:oasis:names:tc:opendocument:xmlns:container container"`
	Version   string     `xml:"version,attr"`
	Rootfiles []rootfile `xml:"rootfiles>rootfile"`
}

type rootfile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// opfPackage is the written form of the package document. Dublin Core
// elements carry a literal prefix bound on <metadata>.
type opfPackage struct {
	XMLName          xml.Name    `xml:"http://www.idpf.org/2007/opf package"`
	Version          string      `xml:"version,attr"`
	UniqueIdentifier string      `xml:"unique-identifier,attr"`
	Metadata         opfMetadata `xml:"metadata"`
	Manifest         []opfItem   `xml:"manifest>item"`
	Spine            opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	NamespaceDC string        `xml:"xmlns:dc,attr"`
	Title       string        `xml:"dc:title"`
	Creator     string        `xml:"dc:creator,omitempty"`
	Language    string        `xml:"dc:language"`
	Identifier  opfIdentifier `xml:"dc:identifier"`
}

type opfIdentifier struct {
	ID    string `xml:"id,attr"`
	Value string `xml:",chardata"`
}

type opfItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

type opfSpine struct {
	TOC      string       `xml:"toc,attr"`
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef string `xml:"idref,attr"`
}

// opfRead is the parsed form of a package document. Tags without a
// namespace match the prefixed Dublin Core elements.
type opfRead struct {
	Metadata struct {
		Title      string `xml:"title"`
		Creator    string `xml:"creator"`
		Language   string `xml:"language"`
		Identifier string `xml:"identifier"`
	} `xml:"metadata"`
	Manifest []opfItem `xml:"manifest>item"`
	Spine    opfSpine  `xml:"spine"`
}

type ncxDoc struct {
	XMLName   xml.Name      `xml:"http://www.daisy.org/z3986/2005/ncx/ ncx"`
	Version   string        `xml:"version,attr"`
	Meta      []ncxMeta     `xml:"head>meta"`
	DocTitle  string        `xml:"docTitle>text"`
	NavPoints []ncxNavPoint `xml:"navMap>navPoint"`
}

type ncxMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type ncxNavPoint struct {
	ID        string     `xml:"id,attr"`
	PlayOrder int        `xml:"playOrder,attr"`
	Label     string     `xml:"navLabel>text"`
	Content   ncxContent `xml:"content"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

func encodeXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeContainer() ([]byte, error) {
	return encodeXML(container{
		Version:   "1.0",
		Rootfiles: []rootfile{{FullPath: PackageName, MediaType: MediaTypeOPF}},
	})
}

func (p *Package) encodeOPF() ([]byte, error) {
	doc := opfPackage{
		Version:          "2.0",
		UniqueIdentifier: uniqueIdentifier,
		Metadata: opfMetadata{
			NamespaceDC: nsDC,
			Title:       p.Title,
			Creator:     p.Creator,
			Language:    p.Language,
			Identifier:  opfIdentifier{ID: uniqueIdentifier, Value: p.Identifier},
		},
		Spine: opfSpine{TOC: p.TOC},
	}
	for _, it := range p.Items {
		doc.Manifest = append(doc.Manifest, opfItem(it))
	}
	for _, id := range p.Spine {
		doc.Spine.ItemRefs = append(doc.Spine.ItemRefs, opfItemRef{IDRef: id})
	}
	return encodeXML(doc)
}

func (p *Package) encodeNCX() ([]byte, error) {
	doc := ncxDoc{
		Version: "2005-1",
		Meta: []ncxMeta{
			{Name: "dtb:uid", Content: p.Identifier},
			{Name: "dtb:depth", Content: "1"},
			{Name: "dtb:totalPageCount", Content: "0"},
			{Name: "dtb:maxPageNumber", Content: "0"},
		},
		DocTitle: p.Title,
	}
	for i, np := range p.Nav {
		doc.NavPoints = append(doc.NavPoints, ncxNavPoint{
			ID:        np.ID,
			PlayOrder: i + 1,
			Label:     np.Label,
			Content:   ncxContent{Src: np.Src},
		})
	}
	return encodeXML(doc)
}

func decodeContainer(data []byte) (string, error) {
	var c container
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("parse %s: %w", ContainerName, err)
	}
	for _, rf := range c.Rootfiles {
		if rf.MediaType == MediaTypeOPF {
			return rf.FullPath, nil
		}
	}
	return "", fmt.Errorf("%s names no package document", ContainerName)
}

func decodeOPF(data []byte) (*Package, error) {
	var doc opfRead
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse package document: %w", err)
	}
	p := &Package{
		Identifier: doc.Metadata.Identifier,
		Title:      doc.Metadata.Title,
		Creator:    doc.Metadata.Creator,
		Language:   doc.Metadata.Language,
		TOC:        doc.Spine.TOC,
	}
	for _, it := range doc.Manifest {
		p.Items = append(p.Items, Item(it))
	}
	for _, ref := range doc.Spine.ItemRefs {
		p.Spine = append(p.Spine, ref.IDRef)
	}
	return p, nil
}

// decodeNCX returns nav points ordered by play order.
func decodeNCX(data []byte) ([]NavPoint, []string, error) {
	var doc ncxDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse NCX: %w", err)
	}
	var problems []string
	nav := make([]NavPoint, 0, len(doc.NavPoints))
	for i, np := range doc.NavPoints {
		if np.PlayOrder != i+1 {
			problems = append(problems, fmt.Sprintf("navPoint %q has playOrder %d, want %d", np.ID, np.PlayOrder, i+1))
		}
		nav = append(nav, NavPoint{ID: np.ID, Label: np.Label, Src: np.Content.Src})
	}
	return nav, problems, nil
}
