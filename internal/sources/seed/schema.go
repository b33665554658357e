package seed

// Entry is one video in the seed file. Marks accept plain seconds ("75")
// or clock notation ("1:23", "1:02:03").
//
//	- video: dQw4w9WgXcQ
//	  title: Some Talk
//	  marks: ["0:30", "12:45", "1:02:03"]
type Entry struct {
	Video string   `yaml:"video"`
	Title string   `yaml:"title"`
	Marks []string `yaml:"marks"`
}

// Config is the root structure of the seed YAML file.
type Config []Entry
