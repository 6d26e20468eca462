package services

// ServiceContainer holds the services wired at startup.
type ServiceContainer struct {
	Persistence   PersistenceSvc
	Suggestions   SuggestionSvc
	KnowledgeBase KnowledgeBaseSvc
	Vocabulary    CategoryVocabularySvc
	Analytics     AnalyticsSvc
	Sessions      DraftSessionManagerSvc
}
