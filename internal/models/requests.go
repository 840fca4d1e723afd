package models

// BaseStatsRequest les six stats de base à la création (somme = 100, max 35)
type BaseStatsRequest struct {
	HP      int `json:"hp" binding:"required,min=1,max=35"`
	Attack  int `json:"attack" binding:"required,min=1,max=35"`
	Defense int `json:"defense" binding:"required,min=1,max=35"`
	SpAtk   int `json:"spAtk" binding:"required,min=1,max=35"`
	SpDef   int `json:"spDef" binding:"required,min=1,max=35"`
	Speed   int `json:"speed" binding:"required,min=1,max=35"`
}

// Sum retourne la somme des stats de base
func (r *BaseStatsRequest) Sum() int {
	return r.HP + r.Attack + r.Defense + r.SpAtk + r.SpDef + r.Speed
}

// RegisterAgentRequest création d'un agent
type RegisterAgentRequest struct {
	Name          string           `json:"name" binding:"required,min=3,max=32"`
	ElementalType string           `json:"elementalType" binding:"required"`
	BaseStats     BaseStatsRequest `json:"baseStats" binding:"required"`
	Nature        string           `json:"nature" binding:"required"`
	Ability       string           `json:"ability" binding:"required"`
	Moves         []string         `json:"moves" binding:"required,len=4"`
	WebhookURL    string           `json:"webhookUrl,omitempty"`
	WebhookSecret string           `json:"webhookSecret,omitempty"`
	PlayMode      string           `json:"playMode,omitempty"`
}

// ConnectAgentRequest création+liaison one-shot d'une identité bot
type ConnectAgentRequest struct {
	RegisterAgentRequest
	OwnerID string `json:"ownerId,omitempty"`
}

// ChallengeRequest défi direct d'un agent
type ChallengeRequest struct {
	TargetID string `json:"targetId" binding:"required,uuid"`
}

// ChooseMoveRequest soumission du move du tour
type ChooseMoveRequest struct {
	MoveID string `json:"moveId" binding:"required"`
}

// UpdateWebhookRequest rotation de l'endpoint webhook
type UpdateWebhookRequest struct {
	WebhookURL    string `json:"webhookUrl" binding:"required"`
	WebhookSecret string `json:"webhookSecret" binding:"required,min=16"`
}

// LeaderboardRequest filtres de la requête de classement
type LeaderboardRequest struct {
	Type   string `form:"type"`
	MinElo int    `form:"minElo"`
	Limit  int    `form:"limit,default=50"`
	Offset int    `form:"offset"`
}
