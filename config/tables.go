package config

// Disclaimer is the site-wide meta description the builder stamped on every
// page that had none of its own.
const Disclaimer = "The Banded Mongoose Research Project consists of a team of researchers working in Uganda, Exeter and Liverpool in the UK. The main project is based at the University of Exeter (Penryn Campus) and is directed by Professor Michael Cant."

// BoilerplatePhrases are removed from free text wherever they appear.
var BoilerplatePhrases = []string{
	Disclaimer,
	"← Back to Home",
	"BMPR. All rights reserved.",
	"All rights reserved.",
	"Mongoose videos by",
}

// PeopleSlugs are pages known to be profiles, including the role pages whose
// slug is the role itself.
var PeopleSlugs = []string{
	"neil-jordan", "emma-inzani", "graham-birch", "nikita-bedov-panasyuk",
	"monil-khera", "dave-seager", "dr-michelle-hares", "dr-harry-marshall",
	"beth-preston", "catherine-sheppard", "jennifer-sanderson", "mike-cant",
	"field-manager", "hazel-nichols", "faye-thompson", "professor",
	"assistant-professor", "chair-of-evolutionary-population-genetics",
	"emma-vitikainen", "laura-labarge", "leela-channer", "patrick-green",
	"joe-hoffman", "dan-franks", "francis-mwanguhya",
}

// NewsSlugs are pages known to be news items.
var NewsSlugs = []string{
	"new-grant",
	"new-funding-from-germany",
	"pioneering-next-generation-animal-tracking",
}

// SlugPositions maps role-named slugs to the role they stand for.
var SlugPositions = map[string]string{
	"professor":           "Professor",
	"assistant-professor": "Assistant Professor",
	"field-manager":       "Field Manager",
	"chair-of-evolutionary-population-genetics": "Chair of Evolutionary Population Genetics",
}

// ScholarlyHosts are hosts whose links are kept as publication files.
var ScholarlyHosts = []string{
	"pubmed.ncbi.nlm.nih.gov",
	"ncbi.nlm.nih.gov",
	"royalsocietypublishing.org",
	"onlinelibrary.wiley.com",
	"academic.oup.com",
	"sciencedirect.com",
	"nature.com",
	"link.springer.com",
	"jstor.org",
	"biorxiv.org",
	"researchgate.net",
}

// ProfileHosts are hosts whose links count as a person's profile link.
var ProfileHosts = []string{
	"orcid.org",
	"scholar.google.com",
	"scholar.google.co.uk",
	"linkedin.com",
	"experts.exeter.ac.uk",
	"liverpool.ac.uk",
}
