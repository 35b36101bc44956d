// Package detect - Open-vocabulary spatial detection of household objects.
//
// The detector runs a YOLO-World style ONNX model whose class list was baked
// in at export time from the vocabulary below, so the vocabulary here must
// stay in sync with the exported model.
package detect

import "strings"

// DefaultVocabulary is the curated list of household-object noun phrases the
// exported model was conditioned on, in export order.
var DefaultVocabulary = []string{
	// Furniture
	"chair", "couch", "sofa", "table", "desk", "bed", "shelf", "bookshelf",
	"cabinet", "dresser", "nightstand", "bench", "stool", "ottoman", "recliner",
	"wardrobe", "tv stand", "coffee table", "dining table", "end table",
	// Electronics
	"tv", "monitor", "laptop", "keyboard", "mouse", "speaker", "headphones",
	"remote", "phone", "tablet", "game console", "router", "camera",
	// Kitchen
	"refrigerator", "microwave", "oven", "toaster", "blender", "kettle",
	"coffee maker", "dishwasher", "pot", "pan", "plate", "bowl", "cup", "mug",
	"glass", "bottle", "cutting board", "knife block",
	// Decor & lighting
	"lamp", "floor lamp", "desk lamp", "chandelier", "candle", "vase",
	"picture frame", "painting", "mirror", "clock", "plant", "potted plant",
	"rug", "curtain", "pillow", "blanket", "figurine", "sculpture",
	// Musical instruments
	"piano", "guitar", "violin", "drum", "keyboard instrument",
	// Books & media
	"book", "magazine", "vinyl record",
	// Appliances
	"washing machine", "dryer", "vacuum", "iron", "fan", "heater",
	"air conditioner", "humidifier",
	// Storage & misc
	"box", "basket", "bag", "suitcase", "backpack", "shoe", "toy",
	"teddy bear", "board game", "bicycle", "umbrella", "toolbox",
}

// categoryKeywords maps coarse categories to the vocabulary names they
// cover. Names absent from every list fall back to "other".
var categoryKeywords = map[string][]string{
	"furniture": {
		"chair", "couch", "sofa", "table", "desk", "bed", "shelf", "bookshelf",
		"cabinet", "dresser", "nightstand", "bench", "stool", "ottoman", "recliner",
		"wardrobe", "tv stand", "coffee table", "dining table", "end table",
	},
	"electronics": {
		"tv", "monitor", "laptop", "keyboard", "mouse", "speaker", "headphones",
		"remote", "phone", "tablet", "game console", "router", "camera",
	},
	"kitchenware": {
		"pot", "pan", "plate", "bowl", "cup", "mug", "glass", "bottle",
		"cutting board", "knife block",
	},
	"appliances": {
		"refrigerator", "microwave", "oven", "toaster", "blender", "kettle",
		"coffee maker", "dishwasher", "washing machine", "dryer", "vacuum",
		"iron", "fan", "heater", "air conditioner", "humidifier",
	},
	"decor": {
		"lamp", "floor lamp", "desk lamp", "chandelier", "candle", "vase",
		"picture frame", "painting", "mirror", "clock", "plant", "potted plant",
		"rug", "curtain", "pillow", "blanket", "figurine", "sculpture",
	},
	"musical_instruments": {
		"piano", "guitar", "violin", "drum", "keyboard instrument",
	},
	"books":    {"book", "magazine", "vinyl record"},
	"toys":     {"toy", "teddy bear", "board game"},
	"clothing": {"shoe", "bag", "backpack", "suitcase"},
	"sports":   {"bicycle"},
	"tools":    {"toolbox"},
	"other":    {"box", "basket", "umbrella"},
}

// vocabCategory is the reverse lookup: lowercased vocabulary name -> category.
var vocabCategory = func() map[string]string {
	m := make(map[string]string)
	for cat, names := range categoryKeywords {
		for _, name := range names {
			m[strings.ToLower(name)] = cat
		}
	}
	return m
}()

// CategoryFor maps a detector class name to its coarse category, defaulting
// to "other" for unmapped names.
func CategoryFor(className string) string {
	if cat, ok := vocabCategory[strings.ToLower(className)]; ok {
		return cat
	}
	return "other"
}
