package suggest

import (
	"github.com/deicod/jsonjinja/runtime"
)

// Template names served by Register.
const (
	PersonTemplate    = "person.html"
	CommitteeTemplate = "committee.html"
	LayoutTemplate    = "layout.html"
)

// Register adds the compiled suggestion templates to b.
func Register(b *runtime.ConfigBuilder) *runtime.ConfigBuilder {
	return b.
		AddTemplate(CommitteeTemplate, runtime.TemplateFactory(newCommitteeTemplate)).
		AddTemplate(LayoutTemplate, runtime.TemplateFactory(newLayoutTemplate)).
		AddTemplate(PersonTemplate, runtime.TemplateFactory(newPersonTemplate))
}

// chamberGroup renders one chamber heading followed by an item per element
// of objects[chamber]. Nothing is written when the group is empty.
func chamberGroup(rts *runtime.RuntimeState, objects interface{}, chamber, heading, target string, item func(value interface{}) error) error {
	group := runtime.GetItem(objects, chamber)
	if !runtime.Truthy(group) {
		return nil
	}
	rts.Write("\n        <strong>" + heading + "</strong>\n        ")
	return runtime.Iterate(group, nil, runtime.Names(target), func(_ runtime.LoopContext, values ...interface{}) error {
		return item(values[0])
	}, nil)
}

// outputItem prints obj[key].
func outputItem(rts *runtime.RuntimeState, obj interface{}, key string) error {
	return rts.Output(runtime.GetItem(obj, key))
}

func newCommitteeTemplate(cfg *runtime.Config) (*runtime.Template, error) {
	committee := func(rts *runtime.RuntimeState) func(c interface{}) error {
		return func(c interface{}) error {
			rts.Write("\n            <li class=\"suggest-item\"><span>\n                <a href='/")
			if err := outputItem(rts, c, "state"); err != nil {
				return err
			}
			rts.Write("/committees/")
			if err := outputItem(rts, c, "_id"); err != nil {
				return err
			}
			rts.Write("/'>")
			if err := outputItem(rts, c, "committee"); err != nil {
				return err
			}
			rts.Write("</a>\n            </span></li>\n        ")
			return nil
		}
	}

	root := func(rts *runtime.RuntimeState) error {
		objects, count := rts.LookupVar("objects"), rts.LookupVar("count")
		rts.Write("<div id=\"suggest-committees\" class=\"clear\">\n    <h3>Committees (")
		if err := rts.Output(count); err != nil {
			return err
		}
		rts.Write(")</h3>\n    <ul>\n\n    ")

		for _, chamber := range []struct{ key, heading string }{{"joint", "Joint"}, {"upper", "Upper"}} {
			if err := chamberGroup(rts, objects, chamber.key, chamber.heading, "c", committee(rts)); err != nil {
				return err
			}
			if runtime.Truthy(runtime.GetItem(objects, chamber.key)) {
				rts.Write("\n    ")
			}
			rts.Write("\n\n    ")
		}

		lower := runtime.Truthy(runtime.GetItem(objects, "lower"))
		if err := chamberGroup(rts, objects, "lower", "Lower", "c", committee(rts)); err != nil {
			return err
		}
		if lower {
			rts.Write("\n        </ul>\n    ")
		}
		rts.Write("\n</div>")
		return nil
	}
	return runtime.NewTemplate(cfg, root, nil, nil), nil
}

func newPersonTemplate(cfg *runtime.Config) (*runtime.Template, error) {
	legislator := func(rts *runtime.RuntimeState) func(leg interface{}) error {
		return func(leg interface{}) error {
			rts.Write("\n            <li class=\"suggest-item\">\n            <span>\n                <a href='/")
			if err := outputItem(rts, leg, "state"); err != nil {
				return err
			}
			rts.Write("/legislators/")
			if err := outputItem(rts, leg, "_id"); err != nil {
				return err
			}
			rts.Write("/'>")
			if err := outputItem(rts, leg, "full_name"); err != nil {
				return err
			}
			rts.Write("</a>\n            </span> (")
			if err := outputItem(rts, leg, "party"); err != nil {
				return err
			}
			rts.Write("\u2014")
			if err := outputItem(rts, leg, "district"); err != nil {
				return err
			}
			rts.Write(")\n            </li>\n        ")
			return nil
		}
	}

	root := func(rts *runtime.RuntimeState) error {
		objects, count := rts.LookupVar("objects"), rts.LookupVar("count")
		rts.Write("<div class='suggest-legislators' class=\"clear\">\n    <h3>Legislators (")
		if err := rts.Output(count); err != nil {
			return err
		}
		rts.Write(")</h3>\n    <ul>\n\n    ")

		if err := chamberGroup(rts, objects, "upper", "Upper", "leg", legislator(rts)); err != nil {
			return err
		}
		if runtime.Truthy(runtime.GetItem(objects, "upper")) {
			rts.Write("\n    ")
		}
		rts.Write("\n\n    ")

		if err := chamberGroup(rts, objects, "lower", "Lower", "leg", legislator(rts)); err != nil {
			return err
		}
		if runtime.Truthy(runtime.GetItem(objects, "lower")) {
			rts.Write("\n    ")
		}
		rts.Write("\n    </ul>\n</div>")
		return nil
	}
	return runtime.NewTemplate(cfg, root, nil, nil), nil
}

func newLayoutTemplate(cfg *runtime.Config) (*runtime.Template, error) {
	root := func(rts *runtime.RuntimeState) error {
		committee, person := rts.LookupVar("committee"), rts.LookupVar("person")
		rts.Write("<div id=\"suggest\">\n    <div class=\"clearfix\"></div>\n    <div id=\"suggest-content\">\n    ")
		for _, column := range []interface{}{person, committee} {
			if runtime.Truthy(column) {
				rts.Write("\n        ")
				if err := rts.Output(column); err != nil {
					return err
				}
				rts.Write("\n    ")
			}
			rts.Write("\n    ")
		}
		rts.Write("</div>\n</div>")
		return nil
	}
	return runtime.NewTemplate(cfg, root, nil, nil), nil
}
