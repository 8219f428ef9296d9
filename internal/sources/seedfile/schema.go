package seedfile

// SeedFolder is one folder entry in the seed YAML.
type SeedFolder struct {
	Name   string `yaml:"name"`
	Parent string `yaml:"parent"` // parent folder name, empty = top level
	Color  string `yaml:"color"`
	Icon   string `yaml:"icon"`
	Order  int    `yaml:"order"`
}

// SeedTag is one tag entry in the seed YAML.
type SeedTag struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// SeedBookmark is one bookmark entry in the seed YAML.
type SeedBookmark struct {
	Title       string   `yaml:"title"`
	URL         string   `yaml:"url"`
	Description string   `yaml:"description"`
	Folder      string   `yaml:"folder"` // folder name, empty = root
	Tags        []string `yaml:"tags"`
}

// SeedConfig is the root structure of the seed file.
type SeedConfig struct {
	Folders   []SeedFolder   `yaml:"folders"`
	Tags      []SeedTag      `yaml:"tags"`
	Bookmarks []SeedBookmark `yaml:"bookmarks"`
}
