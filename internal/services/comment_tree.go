package services

import "github.com/anonto42/nano-comments/backend/internal/models"

// buildTree links traversal rows into a forest. rows must be in pre-order; comments holds the
// hydrated live comments keyed by id. The first pass materializes every node, the second
// attaches each node to its parent, or to the forest when the parent is not part of the result
// (a root, or a reply whose parent is tombstoned).
func buildTree(rows []models.CommentTreeRow, comments map[uint]models.Comment) []*models.CommentNode {
	nodes := make(map[uint]*models.CommentNode, len(rows))
	ordered := make([]*models.CommentNode, 0, len(rows))

	for _, row := range rows {
		comment, ok := comments[row.ID]
		if !ok {
			// deleted between the traversal and hydration
			continue
		}
		node := &models.CommentNode{
			Comment:  comment,
			Depth:    row.Depth,
			Children: []*models.CommentNode{},
		}
		nodes[row.ID] = node
		ordered = append(ordered, node)
	}

	forest := make([]*models.CommentNode, 0)
	for _, node := range ordered {
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		forest = append(forest, node)
	}
	return forest
}
