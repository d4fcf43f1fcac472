package provider

import "sort"

// Registry 负责端点发现与确定性选择。
// embedded 标记调用上下文是否运行在受限的嵌入框架内,
// 在构造时注入, 选择过程本身无副作用。
type Registry struct {
	source   Source
	embedded bool
}

func NewRegistry(source Source, embedded bool) *Registry {
	return &Registry{source: source, embedded: embedded}
}

// Embedded 返回当前上下文是否为受限嵌入环境
func (r *Registry) Embedded() bool {
	return r.embedded
}

// Discover 按固定策略枚举候选端点:
//  1. 嵌入上下文中剔除 Restricted 端点 (不可自动信任);
//     非首选端点同样只在非嵌入上下文中保留
//  2. Preferred 端点稳定排序在最前
//  3. 全部被过滤且存在未标记的默认端点时, 非嵌入上下文将其作为兜底
func (r *Registry) Discover() []Descriptor {
	var out []Descriptor

	// 默认端点如果本身就是首选, 优先纳入
	if def, ok := r.source.Default(); ok && def.Preferred && !r.embedded {
		out = append(out, def)
	}

	for _, d := range r.source.List() {
		if r.embedded && d.Restricted {
			continue
		}
		if !d.Preferred && r.embedded {
			continue
		}
		out = append(out, d)
	}

	// 稳定排序: 首选在前, 其余保持原有相对顺序
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Preferred && !out[j].Preferred
	})

	if len(out) == 0 && !r.embedded {
		if def, ok := r.source.Default(); ok && !def.Preferred && !def.Restricted {
			out = append(out, def)
		}
	}

	return out
}

// Select 返回 Discover 结果的第一个端点。
// 必须确定且无副作用: 显式连接和静默恢复探测都会调用它。
func (r *Registry) Select() (Descriptor, bool) {
	candidates := r.Discover()
	if len(candidates) == 0 {
		return Descriptor{}, false
	}
	return candidates[0], true
}
