package api

import "github.com/alexanderramin/taskdesk/internal/domain"

// API groups the typed services over one Client.
type API struct {
	Client        *Client
	Tasks         *TaskService
	Attachments   *AttachmentService
	Deliveries    *DeliveryService
	DeliveryItems *DeliveryItemService
	Projects      *CatalogService[domain.Project]
	Quotes        *CatalogService[domain.Quote]
	Requesters    *CatalogService[domain.Requester]
	Billing       *BillingService
	Auth          *AuthService
	Profile       *ProfileService
}

func New(c *Client) *API {
	return &API{
		Client:        c,
		Tasks:         &TaskService{c: c},
		Attachments:   &AttachmentService{c: c},
		Deliveries:    &DeliveryService{c: c},
		DeliveryItems: &DeliveryItemService{c: c},
		Projects:      &CatalogService[domain.Project]{c: c, resource: "projects"},
		Quotes:        &CatalogService[domain.Quote]{c: c, resource: "quotes"},
		Requesters:    &CatalogService[domain.Requester]{c: c, resource: "requesters"},
		Billing:       &BillingService{c: c},
		Auth:          &AuthService{c: c},
		Profile:       &ProfileService{c: c},
	}
}
