package runtime_test

import (
	"fmt"

	"github.com/deicod/jsonjinja/runtime"
)

func ExampleTemplate_Render() {
	// {% for c in committees %}<li>{{ c.name }}</li>{% else %}<li>none</li>{% endfor %}
	list := runtime.NewTemplate(nil, func(rts *runtime.RuntimeState) error {
		return runtime.Iterate(rts.LookupVar("committees"), nil, runtime.Names("c"),
			func(loop runtime.LoopContext, values ...interface{}) error {
				rts.Write("<li>")
				if err := rts.Output(runtime.GetAttr(values[0], "name")); err != nil {
					return err
				}
				rts.Write("</li>")
				return nil
			},
			func() error {
				rts.Write("<li>none</li>")
				return nil
			})
	}, nil, nil)

	cfg, err := runtime.NewConfigBuilder().AddTemplate("list.html", list).Build()
	if err != nil {
		fmt.Println(err)
		return
	}

	out, _ := runtime.RenderTemplate(cfg, "list.html", map[string]interface{}{
		"committees": []interface{}{
			map[string]interface{}{"name": "Rules"},
			map[string]interface{}{"name": "Ways & Means"},
		},
	})
	fmt.Println(out)
	out, _ = runtime.RenderTemplate(cfg, "list.html", nil)
	fmt.Println(out)
	// Output:
	// <li>Rules</li><li>Ways &amp; Means</li>
	// <li>none</li>
}

func ExampleRuntimeState_ExtendTemplate() {
	layout := runtime.NewTemplate(nil, func(rts *runtime.RuntimeState) error {
		rts.Write("<h1>")
		if err := rts.EvaluateBlock("title", nil); err != nil {
			return err
		}
		rts.Write("</h1>")
		return nil
	}, nil, map[string]runtime.RenderFunc{
		"title": func(rts *runtime.RuntimeState) error {
			rts.Write("Default")
			return nil
		},
	})
	page := runtime.NewTemplate(nil, func(rts *runtime.RuntimeState) error {
		return rts.ExtendTemplate("layout.html", nil, nil)
	}, nil, map[string]runtime.RenderFunc{
		"title": func(rts *runtime.RuntimeState) error {
			rts.Write("Page / ")
			return rts.Super()
		},
	})

	cfg, err := runtime.NewConfigBuilder().
		AddTemplate("layout.html", layout).
		AddTemplate("page.html", page).
		Build()
	if err != nil {
		fmt.Println(err)
		return
	}
	out, err := runtime.RenderTemplate(cfg, "page.html", nil)
	fmt.Println(out, err)
	// Output: <h1>Page / Default</h1> <nil>
}

func ExampleFinalize() {
	for _, v := range []interface{}{nil, true, 3, 2.5, "<b>", runtime.MarkSafe("<b>")} {
		s, _ := runtime.Finalize(v, true)
		fmt.Printf("%q\n", s)
	}
	// Output:
	// ""
	// "true"
	// "3"
	// "2.5"
	// "&lt;b&gt;"
	// "<b>"
}
