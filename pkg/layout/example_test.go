package layout_test

import (
	"fmt"

	"github.com/matzehuels/systemmap/pkg/content"
	"github.com/matzehuels/systemmap/pkg/layout"
	"github.com/matzehuels/systemmap/pkg/tree"
)

func ExampleCalculate() {
	root := &content.Node{
		ID:   "root",
		Type: content.TypeCategory,
		Children: []*content.Node{
			{ID: "about", Type: content.TypeArticle},
			{
				ID:           "spin",
				Type:         content.TypeArticle,
				IframeConfig: &content.IframeConfig{URL: "https://spin.example", Orientation: content.OrientationMobile},
			},
		},
	}

	m := layout.Calculate(root, tree.NewSet("root", "spin"), nil)
	for _, n := range m.Sorted() {
		fmt.Printf("%s x=%v y=%v %vx%v\n", n.ID, n.X, n.Y, n.Width, n.Height)
	}
	// Output:
	// root x=0 y=0 250x150
	// about x=350 y=-425 250x150
	// spin x=350 y=100 800x600
	// spin-preview x=1250 y=100 450x800
}
