package rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRuleFile(t *testing.T, root string, rel string, body string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func seedRuleTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeRuleFile(t, root, "india/common/aa.json",
		`[{"id":"IN-1","regulation":"Drugs and Magic Remedies Act","title":"No cure claims"}]`)
	writeRuleFile(t, root, "india/common/bb.json",
		`[{"id":"IN-2","regulation":"Consumer Protection Act","title":"No misleading ads"}]`)
	writeRuleFile(t, root, "india/healthcare/cc.json",
		`[{"id":"IN-H-1","regulation":"ASCI Code","section":"1.4","title":"Substantiate health claims"}]`)
	writeRuleFile(t, root, "gcc/ae/common/dd.json",
		`[{"id":"AE-1","regulation":"UAE Media Law","title":"Advertising approval required"}]`)
	return root
}

func TestGetMergesCommonAndCategory(t *testing.T) {
	repo := NewRepository(seedRuleTree(t))

	got := repo.Get("India", "", "healthcare")
	require.Len(t, got, 3)
	// Common rules first, in filename order, then category rules.
	assert.Equal(t, "IN-1", got[0].ID)
	assert.Equal(t, "IN-2", got[1].ID)
	assert.Equal(t, "IN-H-1", got[2].ID)
	assert.Equal(t, "1.4", got[2].Section)
	assert.Equal(t, filepath.Join("india", "healthcare"), got[2].JurisdictionPath)
}

func TestGetGCCMemberResolvesRegionTree(t *testing.T) {
	repo := NewRepository(seedRuleTree(t))

	direct := repo.Get("gcc", "ae", "")
	require.Len(t, direct, 1)
	assert.Equal(t, "AE-1", direct[0].ID)

	// A member country maps into the shared gcc tree.
	member := repo.Get("AE", "", "")
	require.Len(t, member, 1)
	assert.Equal(t, "AE-1", member[0].ID)
}

func TestGetUnknownJurisdictionIsEmpty(t *testing.T) {
	repo := NewRepository(seedRuleTree(t))
	assert.Empty(t, repo.Get("atlantis", "", "finance"))
}

func TestGetSkipsMalformedFiles(t *testing.T) {
	root := seedRuleTree(t)
	writeRuleFile(t, root, "india/common/zz.json", `{not json`)

	repo := NewRepository(root)
	got := repo.Get("india", "", "")
	assert.Len(t, got, 2)
}

func TestGetCachesUntilInvalidated(t *testing.T) {
	root := seedRuleTree(t)
	repo := NewRepository(root)

	require.Len(t, repo.Get("india", "", ""), 2)

	writeRuleFile(t, root, "india/common/ee.json",
		`[{"id":"IN-3","regulation":"Cable TV Rules","title":"No prohibited ads"}]`)

	assert.Len(t, repo.Get("india", "", ""), 2, "cache should serve until invalidated")
	repo.Invalidate()
	assert.Len(t, repo.Get("india", "", ""), 3)
}

func TestWatchInvalidatesOnChange(t *testing.T) {
	root := seedRuleTree(t)
	repo := NewRepository(root)
	require.NoError(t, repo.Watch())
	defer repo.Close()

	require.Len(t, repo.Get("india", "", ""), 2)

	writeRuleFile(t, root, "india/common/ff.json",
		`[{"id":"IN-4","regulation":"Emblems Act","title":"No state emblems in ads"}]`)

	assert.Eventually(t, func() bool {
		return len(repo.Get("india", "", "")) == 3
	}, 5*time.Second, 50*time.Millisecond)
}
