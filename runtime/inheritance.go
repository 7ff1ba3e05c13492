package runtime

import "sort"

// BlockExecutor renders one implementation of a block against ctx, writing
// through w. level is the level the implementation was selected at.
// Executors are registered per block name, most-derived first.
type BlockExecutor func(info *RuntimeInfo, ctx *Context, w WriteFunc, level int) error

// CurrentLevel addresses the most-derived implementation of a block.
// CurrentLevel-1 addresses its parent implementation, and so on.
const CurrentLevel = -1

// RegisterBlock appends executor to the chain for name. Children run their
// setup before their ancestors, so earlier entries are more derived.
func (info *RuntimeInfo) RegisterBlock(name string, executor BlockExecutor) {
	info.blockExecutors[name] = append(info.blockExecutors[name], executor)
}

// EvaluateBlock runs the implementation of name selected by level: -1 is
// the most-derived override, -2 the one it overrides, and so on.
func (info *RuntimeInfo) EvaluateBlock(name string, level int, ctx *Context, w WriteFunc) error {
	executors := info.blockExecutors[name]
	idx := -level - 1
	if idx < 0 || idx >= len(executors) {
		return WrapError(NewBlockNotFound(name, level, len(executors)), info.templateName)
	}
	return executors[idx](info, ctx, w, level)
}

// RegisterBlockMapping registers each block function of a compiled template.
// Block bodies run in a fresh RuntimeState over the supplied context, bound
// to the same info so nested blocks see the same overrides.
func RegisterBlockMapping(info *RuntimeInfo, blocks map[string]RenderFunc) {
	names := make([]string, 0, len(blocks))
	for name := range blocks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		render := blocks[name]
		blockName := name
		info.RegisterBlock(name, func(info *RuntimeInfo, ctx *Context, w WriteFunc, level int) error {
			rts := newRuntimeState(ctx, w, info)
			rts.blockName = blockName
			rts.blockLevel = level
			return render(rts)
		})
	}
}
