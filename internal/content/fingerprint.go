package content

import (
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

type fingerprintFields struct {
	Title    string   `yaml:"title"`
	Date     string   `yaml:"date"`
	Image    string   `yaml:"image"`
	Tags     []string `yaml:"tags"`
	Keywords []string `yaml:"keywords"`
	ReadTime string   `yaml:"readTime"`
	Meta     string   `yaml:"metaDescription"`
}

// Fingerprint hashes the fields that affect a rendered post page. Two posts
// with equal fingerprints render identically.
func Fingerprint(p Post) string {
	fields := fingerprintFields{
		Title:    p.Title,
		Date:     p.Date,
		Image:    p.Image,
		Tags:     p.Tags,
		Keywords: p.Keywords,
		ReadTime: p.ReadTime,
		Meta:     p.MetaDescription,
	}
	serialized, err := yaml.Marshal(fields)
	if err != nil {
		// Plain strings and slices always marshal.
		serialized = nil
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(serialized), "\n"), p.Content)
}
