package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func desc(name string, preferred, restricted bool) Descriptor {
	return Descriptor{Name: name, Preferred: preferred, Restricted: restricted}
}

func TestSelect_PreferredFirst(t *testing.T) {
	src := &StaticSource{Endpoints: []Descriptor{
		desc("other-a", false, false),
		desc("metamask", true, false),
		desc("other-b", false, false),
	}}
	r := NewRegistry(src, false)

	sel, ok := r.Select()
	require.True(t, ok)
	assert.Equal(t, "metamask", sel.Name)

	// 非首选端点之间保持原有相对顺序
	got := r.Discover()
	require.Len(t, got, 3)
	assert.Equal(t, "other-a", got[1].Name)
	assert.Equal(t, "other-b", got[2].Name)
}

func TestSelect_EmbeddedExcludesRestricted(t *testing.T) {
	src := &StaticSource{Endpoints: []Descriptor{
		desc("trust", false, true),
		desc("metamask", true, false),
	}}

	// 嵌入上下文: 受限端点被整体剔除, 首选端点仍然可用
	r := NewRegistry(src, true)
	for _, d := range r.Discover() {
		assert.False(t, d.Restricted, "嵌入上下文不应返回受限端点")
	}
	sel, ok := r.Select()
	require.True(t, ok)
	assert.Equal(t, "metamask", sel.Name)

	// 非嵌入上下文: 受限端点允许存在, 但首选仍然排第一
	r = NewRegistry(src, false)
	sel, ok = r.Select()
	require.True(t, ok)
	assert.Equal(t, "metamask", sel.Name)
}

func TestSelect_EmbeddedDropsNonPreferred(t *testing.T) {
	src := &StaticSource{Endpoints: []Descriptor{
		desc("other", false, false),
	}}
	r := NewRegistry(src, true)

	_, ok := r.Select()
	assert.False(t, ok, "嵌入上下文中非首选端点不应被自动信任")
}

func TestSelect_AmbientFallback(t *testing.T) {
	ambient := desc("ambient", false, false)
	src := &StaticSource{Ambient: &ambient}

	// 非嵌入: 未标记的默认端点作为兜底
	sel, ok := NewRegistry(src, false).Select()
	require.True(t, ok)
	assert.Equal(t, "ambient", sel.Name)

	// 嵌入: 兜底同样被禁止
	_, ok = NewRegistry(src, true).Select()
	assert.False(t, ok)
}

func TestSelect_PreferredAmbientFirst(t *testing.T) {
	ambient := desc("metamask-ambient", true, false)
	src := &StaticSource{
		Endpoints: []Descriptor{desc("other", false, false)},
		Ambient:   &ambient,
	}

	sel, ok := NewRegistry(src, false).Select()
	require.True(t, ok)
	assert.Equal(t, "metamask-ambient", sel.Name)
}

func TestSelect_Empty(t *testing.T) {
	_, ok := NewRegistry(&StaticSource{}, false).Select()
	assert.False(t, ok)
}

func TestSelect_Deterministic(t *testing.T) {
	src := &StaticSource{Endpoints: []Descriptor{
		desc("a", false, false),
		desc("b", true, false),
		desc("c", true, false),
	}}
	r := NewRegistry(src, false)

	first, ok := r.Select()
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := r.Select()
		require.True(t, ok)
		assert.Equal(t, first.Name, again.Name)
	}
}
