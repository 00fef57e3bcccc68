package export

import (
	"github.com/iksnae/mirova/internal"
)

func sampleDocument() *Document {
	return &Document{
		Identity:   "ada@example.com",
		ExportedAt: "2025-02-03T04:05:06.000Z",
		Items: []internal.HistoryItem{
			internal.CreateTestHistoryItem("h4", internal.FeatureSTT, internal.CreateTestSttResult("namaste")),
			internal.CreateTestHistoryItem("h3", internal.FeatureCoder, internal.CreateTestCoderSession("c1", "print hi")),
			internal.CreateTestHistoryItem("h2", internal.FeatureImage, internal.CreateTestImageSession("i1", "a red bike")),
			internal.CreateTestHistoryItem("h1", internal.FeatureChat, internal.CreateTestChatSession("t1")),
		},
	}
}
