package source

import "fmt"

// Selector describes which remote files to fetch. It is one of Category,
// Page, or LocalList.
type Selector interface {
	fmt.Stringer
	isSelector()
}

// Category selects the files that are direct members of a category.
type Category struct {
	Name string // With or without the "Category:" prefix.
}

// Page selects the files used on a page.
type Page struct {
	Title string
}

// LocalList selects the files named in a local text file, one per line.
type LocalList struct {
	Path string
}

func (Category) isSelector()  {}
func (Page) isSelector()      {}
func (LocalList) isSelector() {}

func (s Category) String() string  { return "category " + s.Name }
func (s Page) String() string      { return "page " + s.Title }
func (s LocalList) String() string { return "file " + s.Path }
