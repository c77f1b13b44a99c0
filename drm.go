package epubsplit

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	encryptionFilePath = "META-INF/encryption.xml"

	// sinfFilePath marks Apple FairPlay protected books.
	sinfFilePath = "META-INF/sinf.xml"
)

// Font obfuscation only scrambles embedded fonts; chapter text stays readable.
var fontObfuscationAlgorithms = map[string]bool{
	"http://www.idpf.org/2008/embedding": true, // IDPF
	"http://ns.adobe.com/pdf/enc#RC":     true, // Adobe
}

// encryptionDoc is the subset of encryption.xml needed to tell font
// obfuscation from content encryption. Element names match in any namespace.
type encryptionDoc struct {
	XMLName xml.Name        `xml:"encryption"`
	Entries []encryptedData `xml:"EncryptedData"`
}

type encryptedData struct {
	Method struct {
		Algorithm string `xml:"Algorithm,attr"`
	} `xml:"EncryptionMethod"`
	Reference struct {
		URI string `xml:"URI,attr"`
	} `xml:"CipherData>CipherReference"`
}

// encryptionInfo is what the container says about protected entries.
// Nothing in it is fatal: chapters listed in encrypted are skipped one by one.
type encryptionInfo struct {
	// encrypted maps archive paths to the algorithm protecting them.
	encrypted       map[string]string
	fontObfuscation bool
	warnings        []string
}

// algorithm reports the content encryption algorithm for the entry at p.
func (e encryptionInfo) algorithm(p string) (string, bool) {
	algo, ok := e.encrypted[p]
	return algo, ok
}

// readEncryption inspects META-INF/sinf.xml and META-INF/encryption.xml.
// CipherReference URIs are relative to the container root.
func readEncryption(a *Archive) encryptionInfo {
	var info encryptionInfo
	if a.Has(sinfFilePath) {
		info.warnings = append(info.warnings, fmt.Sprintf("FairPlay rights file %s present; encrypted chapters will be unreadable", sinfFilePath))
	}
	if !a.Has(encryptionFilePath) {
		return info
	}

	data, err := a.ReadFile(encryptionFilePath)
	if err != nil {
		info.warnings = append(info.warnings, fmt.Sprintf("cannot read %s: %v", encryptionFilePath, err))
		return info
	}

	var doc encryptionDoc
	if err := xml.Unmarshal(stripBOM(data), &doc); err != nil {
		info.warnings = append(info.warnings, fmt.Sprintf("malformed %s ignored: %v", encryptionFilePath, err))
		return info
	}

	for _, ed := range doc.Entries {
		algo := strings.TrimSpace(ed.Method.Algorithm)
		if fontObfuscationAlgorithms[algo] {
			info.fontObfuscation = true
			continue
		}
		if info.encrypted == nil {
			info.encrypted = make(map[string]string)
		}
		// Record both spellings so lookups by decoded or literal path match.
		for _, p := range []string{
			resolveRelativePath("", ed.Reference.URI),
			resolveLiteralPath("", ed.Reference.URI),
		} {
			if p != "" {
				info.encrypted[p] = algo
			}
		}
	}
	if len(info.encrypted) > 0 {
		info.warnings = append(info.warnings, fmt.Sprintf("%s lists encrypted entries; affected chapters are skipped", encryptionFilePath))
	}
	return info
}
