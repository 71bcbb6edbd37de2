package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"cmfs/ai"
	"cmfs/cache"
	"cmfs/models"
	"cmfs/repository"
)

const (
	categoryKeywordLimit  = 10
	categoryHistoryLimit  = 50
	suggestionLimit       = 5
	embeddingCacheKeyBase = "category_embeddings"
)

// AIService runs the triage pipeline: classify complaint text into a
// category, score its priority and route it to the first-level officer.
// All failures here are non-fatal to complaint creation; a complaint that
// cannot be classified proceeds uncategorized for manual handling.
type AIService struct {
	embedder       ai.Embedder
	cache          cache.Store
	cacheTTL       time.Duration
	categoryRepo   *repository.CategoryRepository
	complaintRepo  *repository.ComplaintRepository
	levelRepo      *repository.ResolverLevelRepository
	resolverRepo   *repository.CategoryResolverRepository
	assignmentRepo *repository.AssignmentRepository
	now            func() time.Time
}

// NewAIService creates a new AI service
func NewAIService(
	embedder ai.Embedder,
	store cache.Store,
	cacheTTL time.Duration,
	categoryRepo *repository.CategoryRepository,
	complaintRepo *repository.ComplaintRepository,
	levelRepo *repository.ResolverLevelRepository,
	resolverRepo *repository.CategoryResolverRepository,
	assignmentRepo *repository.AssignmentRepository,
) *AIService {
	return &AIService{
		embedder:       embedder,
		cache:          store,
		cacheTTL:       cacheTTL,
		categoryRepo:   categoryRepo,
		complaintRepo:  complaintRepo,
		levelRepo:      levelRepo,
		resolverRepo:   resolverRepo,
		assignmentRepo: assignmentRepo,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// cachedEmbeddings is the cache entry format: category ids with their
// parallel vectors.
type cachedEmbeddings struct {
	IDs     []string    `json:"ids"`
	Vectors [][]float64 `json:"vectors"`
}

func embeddingCacheKey(institutionID *int64) string {
	if institutionID == nil {
		return embeddingCacheKeyBase + ":all"
	}
	return fmt.Sprintf("%s:%d", embeddingCacheKeyBase, *institutionID)
}

// GetCategoryEmbeddings returns the cached per-institution category vectors,
// rebuilding the entry on a miss. The rebuild embeds an enriched text per
// category: name, description, parent context and keywords mined from that
// category's recent complaints. Returns empty slices when no categories
// exist.
func (s *AIService) GetCategoryEmbeddings(ctx context.Context, institutionID *int64) ([]string, [][]float64, error) {
	key := embeddingCacheKey(institutionID)

	if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var entry cachedEmbeddings
		if err := json.Unmarshal(raw, &entry); err == nil {
			return entry.IDs, entry.Vectors, nil
		}
		// Corrupt entry: fall through to a rebuild.
	} else if err != nil {
		log.Printf("[AI] Embedding cache read failed: %v", err)
	}

	categories, err := s.categoryRepo.ListActiveCategories(institutionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, nil, nil
	}

	byID := make(map[string]models.Category, len(categories))
	for _, cat := range categories {
		byID[cat.CategoryID] = cat
	}

	ids := make([]string, 0, len(categories))
	texts := make([]string, 0, len(categories))
	for _, cat := range categories {
		ids = append(ids, cat.CategoryID)
		texts = append(texts, s.categoryText(cat, byID))
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to embed categories: %w", err)
	}

	entry := cachedEmbeddings{IDs: ids, Vectors: vectors}
	if raw, err := json.Marshal(entry); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
			log.Printf("[AI] Embedding cache write failed: %v", err)
		}
	}
	return ids, vectors, nil
}

// categoryText builds the enriched representation embedded per category.
func (s *AIService) categoryText(cat models.Category, byID map[string]models.Category) string {
	text := cat.Name
	if cat.Description != "" {
		text += " " + cat.Description
	}
	if cat.ParentID.Valid {
		if parent, ok := byID[cat.ParentID.String]; ok {
			text += " subcategory of " + parent.Name
		} else if parent, err := s.categoryRepo.GetCategoryByID(cat.ParentID.String); err == nil {
			text += " subcategory of " + parent.Name
		}
	}
	if histories, err := s.complaintRepo.RecentTextsByCategory(cat.CategoryID, categoryHistoryLimit); err == nil {
		for _, kw := range ai.TopKeywords(histories, categoryKeywordLimit) {
			text += " " + kw
		}
	} else {
		log.Printf("[AI] Keyword mining failed for category %s: %v", cat.CategoryID, err)
	}
	return text
}

// PredictCategory classifies complaint text against the institution's
// categories. It returns the accepted category (nil when the top candidate
// falls below the dynamic threshold or when classification is unavailable)
// and the per-category scores for the top candidates. Infrastructure
// failures are logged, never raised.
func (s *AIService) PredictCategory(ctx context.Context, text string, institutionID *int64) (*models.Category, []models.CategoryScore) {
	ids, vectors, err := s.GetCategoryEmbeddings(ctx, institutionID)
	if err != nil {
		log.Printf("[AI] Category embeddings unavailable: %v", err)
		return nil, nil
	}
	if len(ids) == 0 {
		log.Printf("[AI] No categories available for prediction")
		return nil, nil
	}

	processed := ai.PreprocessText(text)
	embedded, err := s.embedder.Embed(ctx, []string{processed})
	if err != nil || len(embedded) != 1 {
		log.Printf("[AI] Failed to embed complaint text: %v", err)
		return nil, nil
	}
	query := embedded[0]

	similarities := make([]float64, len(ids))
	for i, vec := range vectors {
		similarities[i] = ai.CosineSimilarity(query, vec)
	}
	probabilities := ai.Softmax(similarities)

	order := make([]int, len(ids))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return similarities[order[a]] > similarities[order[b]]
	})

	names := s.categoryNames(institutionID)
	scores := make([]models.CategoryScore, 0, suggestionLimit)
	for rank, idx := range order {
		if rank >= suggestionLimit {
			break
		}
		scores = append(scores, models.CategoryScore{
			CategoryID:   ids[idx],
			CategoryName: names[ids[idx]],
			Similarity:   similarities[idx],
			Probability:  probabilities[idx],
			Confidence:   ai.Confidence(similarities[idx], probabilities),
		})
	}

	top := scores[0]
	secondSim := top.Similarity
	if len(scores) > 1 {
		secondSim = scores[1].Similarity
	}
	threshold := ai.DynamicThreshold(top.Similarity, secondSim, top.Confidence, len(ids))
	log.Printf("[AI] Best match %s: similarity=%.3f threshold=%.3f", top.CategoryID, top.Similarity, threshold)

	if top.Similarity <= threshold {
		log.Printf("[AI] No category selected - best similarity %.3f below threshold %.3f", top.Similarity, threshold)
		return nil, scores
	}

	category, err := s.categoryRepo.GetCategoryByID(top.CategoryID)
	if err != nil {
		log.Printf("[AI] Predicted category %s vanished: %v", top.CategoryID, err)
		return nil, scores
	}
	return category, scores
}

// categoryNames maps visible category ids to names for score reporting.
func (s *AIService) categoryNames(institutionID *int64) map[string]string {
	names := make(map[string]string)
	categories, err := s.categoryRepo.ListActiveCategories(institutionID)
	if err != nil {
		return names
	}
	for _, cat := range categories {
		names[cat.CategoryID] = cat.Name
	}
	return names
}

// SuggestCategories returns the top candidate categories with their scores,
// without mutating anything.
func (s *AIService) SuggestCategories(ctx context.Context, text string, institutionID *int64) []models.CategoryScore {
	_, scores := s.PredictCategory(ctx, text, institutionID)
	return scores
}

// AssignToFirstLevel routes a categorized complaint to the active officer at
// the institution's first resolver level, records the assignment and sets
// the escalation deadline. A complaint without a category, an institution
// without a first level, or a category without an active resolver each make
// this a no-op returning nil.
func (s *AIService) AssignToFirstLevel(complaint *models.Complaint) (*int64, error) {
	if !complaint.CategoryID.Valid {
		return nil, nil
	}

	var firstLevel *models.ResolverLevel
	var err error
	if complaint.InstitutionID.Valid {
		firstLevel, err = s.levelRepo.GetFirstLevel(complaint.InstitutionID.Int64)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve first level: %w", err)
	}
	if firstLevel == nil {
		// Defensive fallback: any order-1 level regardless of institution.
		firstLevel, err = s.levelRepo.GetAnyFirstLevel()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve fallback first level: %w", err)
		}
	}
	if firstLevel == nil {
		return nil, nil
	}

	resolver, err := s.resolverRepo.FindActiveResolver(complaint.CategoryID.String, firstLevel.LevelID)
	if err != nil {
		return nil, fmt.Errorf("failed to find category resolver: %w", err)
	}
	if resolver == nil {
		return nil, nil
	}

	if err := s.complaintRepo.UpdateAssignment(complaint.ComplaintID, resolver.OfficerID, firstLevel.LevelID); err != nil {
		return nil, err
	}
	deadline := s.now().Add(firstLevel.EscalationTime)
	if _, err := s.complaintRepo.SetEscalationDeadlineIfAbsent(complaint.ComplaintID, deadline); err != nil {
		return nil, err
	}
	if err := s.assignmentRepo.CreateAssignment(&models.Assignment{
		ComplaintID: complaint.ComplaintID,
		OfficerID:   resolver.OfficerID,
		LevelID:     firstLevel.LevelID,
		Reason:      models.ReasonInitial,
	}); err != nil {
		return nil, err
	}

	complaint.AssignedOfficerID = sql.NullInt64{Int64: resolver.OfficerID, Valid: true}
	complaint.CurrentLevelID = sql.NullInt64{Int64: firstLevel.LevelID, Valid: true}
	if !complaint.EscalationDeadline.Valid {
		complaint.EscalationDeadline = sql.NullTime{Time: deadline, Valid: true}
	}
	return &resolver.OfficerID, nil
}

// ProcessComplaint runs the full pipeline on one complaint: classify when
// uncategorized, score priority, persist both, then attempt first-level
// assignment. Classification failures leave the complaint uncategorized;
// assignment failures leave it unassigned; neither is fatal.
func (s *AIService) ProcessComplaint(ctx context.Context, complaint *models.Complaint) *models.ProcessResult {
	text := complaint.Title + " " + complaint.Description

	var institutionID *int64
	if complaint.InstitutionID.Valid {
		institutionID = &complaint.InstitutionID.Int64
	}

	result := &models.ProcessResult{}
	if !complaint.CategoryID.Valid {
		category, scores := s.PredictCategory(ctx, text, institutionID)
		result.Scores = scores
		if category != nil {
			complaint.CategoryID = sql.NullString{String: category.CategoryID, Valid: true}
			result.CategoryID = &category.CategoryID
			result.CategoryName = &category.Name
			log.Printf("[AI] Complaint %s classified as %s", complaint.ComplaintID, category.Name)
		}
	} else {
		id := complaint.CategoryID.String
		result.CategoryID = &id
	}

	complaint.Priority = ai.ScorePriority(text)
	result.Priority = complaint.Priority

	if err := s.complaintRepo.UpdateTriage(complaint.ComplaintID, complaint.CategoryID, complaint.Priority); err != nil {
		log.Printf("[AI] Failed to persist triage for complaint %s: %v", complaint.ComplaintID, err)
		return result
	}

	officerID, err := s.AssignToFirstLevel(complaint)
	if err != nil {
		log.Printf("[AI] First-level assignment failed for complaint %s: %v", complaint.ComplaintID, err)
		return result
	}
	result.AssignedOfficerID = officerID
	return result
}
