package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	spdxjson "github.com/spdx/tools-golang/json"
	"github.com/spdx/tools-golang/spdx/v2/common"
	"github.com/spdx/tools-golang/spdx/v2/v2_3"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

const (
	// NoAssertion indicates that we don't claim anything about the value of a given field.
	NoAssertion = "NOASSERTION"

	spdxRefPrefix  = "SPDXRef-"
	spdxDocumentID = "SPDXRef-DOCUMENT"
	namespaceBase  = "https://spdx.org/spdxdocs/bst-license-checker/"
)

var spdxIDInvalidCharRe = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// ToSPDX23 converts a report into an SPDX 2.3 document with one package per
// element. Scanner license names are not SPDX expressions, so they are kept
// as license comments and the concluded license stays NOASSERTION.
func ToSPDX23(r *domain.Report) *v2_3.Document {
	name := r.Project
	if name == "" {
		name = "bst-license-checker report"
	}
	rootID := spdxRefPrefix + "Package-project"
	packages := []*v2_3.Package{{
		PackageName:             name,
		PackageSPDXIdentifier:   common.ElementID(rootID),
		PackageVersion:          r.Revision.Commit,
		PackageDownloadLocation: NoAssertion,
		PackageLicenseConcluded: NoAssertion,
		PackageLicenseDeclared:  NoAssertion,
		PackageCopyrightText:    NoAssertion,
	}}
	relationships := []*v2_3.Relationship{{
		RefA:         toDocElementID(spdxDocumentID),
		RefB:         toDocElementID(rootID),
		Relationship: "DESCRIBES",
	}}

	for i, res := range r.Results {
		id := fmt.Sprintf("%sPackage-%s-%d", spdxRefPrefix, spdxIDInvalidCharRe.ReplaceAllString(string(res.Ref), "-"), i)
		pkg := &v2_3.Package{
			PackageName:             string(res.Ref),
			PackageSPDXIdentifier:   common.ElementID(id),
			PackageVersion:          string(res.Key),
			PackageDownloadLocation: NoAssertion,
			PackageLicenseConcluded: NoAssertion,
			PackageLicenseDeclared:  NoAssertion,
			PackageCopyrightText:    NoAssertion,
			PackageSourceInfo:       fmt.Sprintf("BuildStream element %s at full key %s", res.Ref, res.Key),
			PackageComment:          "checkout status: " + string(res.Status),
		}
		if len(res.Licenses) > 0 {
			pkg.PackageLicenseComments = "Detected by licensecheck: " + strings.Join(res.Licenses, "; ")
		}
		if res.Diagnostic != "" {
			pkg.PackageComment += " (" + res.Diagnostic + ")"
		}
		packages = append(packages, pkg)
		relationships = append(relationships, &v2_3.Relationship{
			RefA:         toDocElementID(rootID),
			RefB:         toDocElementID(id),
			Relationship: "DEPENDS_ON",
		})
	}

	return &v2_3.Document{
		SPDXVersion:       "SPDX-2.3",
		DataLicense:       "CC0-1.0",
		SPDXIdentifier:    "DOCUMENT",
		DocumentName:      name,
		DocumentNamespace: namespaceBase + r.RunID,
		CreationInfo: &v2_3.CreationInfo{
			Creators: []common.Creator{{CreatorType: "Tool", Creator: "bst-license-checker"}},
			Created:  r.Generated.UTC().Format("2006-01-02T15:04:05Z"),
		},
		Packages:      packages,
		Relationships: relationships,
	}
}

// WriteSPDX writes the SPDX JSON document.
func WriteSPDX(r *domain.Report, outputDir string) error {
	doc := ToSPDX23(r)
	return writeFile(filepath.Join(outputDir, SummarySPDX), func(f *os.File) error {
		return spdxjson.Write(doc, f, spdxjson.Indent("  "))
	})
}

func toDocElementID(id string) common.DocElementID {
	return common.DocElementID{ElementRefID: common.ElementID(id)}
}
