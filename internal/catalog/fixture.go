package catalog

import (
	"slices"
)

// Fixture returns a copy of the demo collection shipped with the catalog.
func Fixture() []Book {
	return slices.Clone(fixtureBooks)
}

// Categories returns the distinct categories of books in sorted order.
func Categories(books []Book) []string {
	seen := make(map[string]struct{}, len(books))
	out := make([]string, 0, len(books))
	for _, b := range books {
		if b.Category == "" {
			continue
		}
		if _, ok := seen[b.Category]; ok {
			continue
		}
		seen[b.Category] = struct{}{}
		out = append(out, b.Category)
	}
	slices.Sort(out)
	return out
}

var fixtureBooks = []Book{
	{
		ID:              "1",
		Title:           "Harry Potter and the Philosopher's Stone",
		Author:          "J.K. Rowling",
		ISBN:            "978-0-7475-3269-9",
		Category:        "Fantasy",
		Description:     "The first book in the magical Harry Potter series about a young wizard discovering his destiny.",
		CoverURL:        "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=300&h=400&fit=crop",
		PublishedYear:   1997,
		TotalCopies:     8,
		AvailableCopies: 5,
	},
	{
		ID:              "2",
		Title:           "Harry Potter and the Chamber of Secrets",
		Author:          "J.K. Rowling",
		ISBN:            "978-0-7475-3849-3",
		Category:        "Fantasy",
		Description:     "Harry's second year at Hogwarts brings new mysteries and dangers.",
		CoverURL:        "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=300&h=400&fit=crop",
		PublishedYear:   1998,
		TotalCopies:     6,
		AvailableCopies: 3,
	},
	{
		ID:              "3",
		Title:           "Harry Potter and the Prisoner of Azkaban",
		Author:          "J.K. Rowling",
		ISBN:            "978-0-7475-4215-5",
		Category:        "Fantasy",
		Description:     "Harry learns about his past and faces new threats in his third year.",
		CoverURL:        "https://images.unsplash.com/photo-1518373714866-3f1478910cc0?w=300&h=400&fit=crop",
		PublishedYear:   1999,
		TotalCopies:     7,
		AvailableCopies: 4,
	},
	{
		ID:              "4",
		Title:           "Computer Architecture: A Quantitative Approach",
		Author:          "John L. Hennessy & David A. Patterson",
		ISBN:            "978-0-12-383872-8",
		Category:        "Computer Science",
		Description:     "Comprehensive guide to modern computer architecture and design principles.",
		CoverURL:        "https://images.unsplash.com/photo-1532012197267-da84d127e765?w=300&h=400&fit=crop",
		PublishedYear:   2019,
		TotalCopies:     4,
		AvailableCopies: 2,
	},
	{
		ID:              "5",
		Title:           "Introduction to Algorithms",
		Author:          "Thomas H. Cormen",
		ISBN:            "978-0-262-03384-8",
		Category:        "Computer Science",
		Description:     "The comprehensive guide to algorithms and data structures.",
		CoverURL:        "https://images.unsplash.com/photo-1553484771-371a605b060b?w=300&h=400&fit=crop",
		PublishedYear:   2009,
		TotalCopies:     6,
		AvailableCopies: 3,
	},
	{
		ID:              "6",
		Title:           "Data Structures and Algorithms in Java",
		Author:          "Robert Lafore",
		ISBN:            "978-0-672-32453-4",
		Category:        "Computer Science",
		Description:     "Learn fundamental data structures and algorithms with Java implementations.",
		CoverURL:        "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=300&h=400&fit=crop",
		PublishedYear:   2017,
		TotalCopies:     5,
		AvailableCopies: 4,
	},
	{
		ID:              "7",
		Title:           "Clean Code",
		Author:          "Robert C. Martin",
		ISBN:            "978-0-13-235088-4",
		Category:        "Technology",
		Description:     "A handbook of agile software craftsmanship.",
		CoverURL:        "https://images.unsplash.com/photo-1544716278-ca5e3f4abd8c?w=300&h=400&fit=crop",
		PublishedYear:   2008,
		TotalCopies:     8,
		AvailableCopies: 6,
	},
	{
		ID:              "8",
		Title:           "The Shining",
		Author:          "Stephen King",
		ISBN:            "978-0-385-12167-5",
		Category:        "Horror",
		Description:     "A psychological horror novel about isolation and madness at the Overlook Hotel.",
		CoverURL:        "https://images.unsplash.com/photo-1512820790803-83ca734da794?w=300&h=400&fit=crop",
		PublishedYear:   1977,
		TotalCopies:     5,
		AvailableCopies: 2,
	},
	{
		ID:              "9",
		Title:           "Dracula",
		Author:          "Bram Stoker",
		ISBN:            "978-0-486-41109-7",
		Category:        "Horror",
		Description:     "The classic vampire novel that defined the genre.",
		CoverURL:        "https://images.unsplash.com/photo-1589998059171-988d887df646?w=300&h=400&fit=crop",
		PublishedYear:   1897,
		TotalCopies:     4,
		AvailableCopies: 3,
	},
	{
		ID:              "10",
		Title:           "Frankenstein",
		Author:          "Mary Shelley",
		ISBN:            "978-0-486-28211-4",
		Category:        "Horror",
		Description:     "The original science fiction horror novel about creating life.",
		CoverURL:        "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=300&h=400&fit=crop",
		PublishedYear:   1818,
		TotalCopies:     3,
		AvailableCopies: 1,
	},
	{
		ID:              "11",
		Title:           "It",
		Author:          "Stephen King",
		ISBN:            "978-0-670-81302-4",
		Category:        "Horror",
		Description:     "A terrifying tale of an ancient evil that haunts the town of Derry.",
		CoverURL:        "https://images.unsplash.com/photo-1553729459-efe14ef6055d?w=300&h=400&fit=crop",
		PublishedYear:   1986,
		TotalCopies:     6,
		AvailableCopies: 0,
	},
	{
		ID:              "12",
		Title:           "The Great Gatsby",
		Author:          "F. Scott Fitzgerald",
		ISBN:            "978-0-7432-7356-5",
		Category:        "Fiction",
		Description:     "A classic American novel set in the Jazz Age.",
		CoverURL:        "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=300&h=400&fit=crop",
		PublishedYear:   1925,
		TotalCopies:     5,
		AvailableCopies: 3,
	},
	{
		ID:              "13",
		Title:           "To Kill a Mockingbird",
		Author:          "Harper Lee",
		ISBN:            "978-0-06-112008-4",
		Category:        "Fiction",
		Description:     "A gripping tale of racial injustice and childhood innocence.",
		CoverURL:        "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=300&h=400&fit=crop",
		PublishedYear:   1960,
		TotalCopies:     4,
		AvailableCopies: 2,
	},
	{
		ID:              "14",
		Title:           "1984",
		Author:          "George Orwell",
		ISBN:            "978-0-452-28423-4",
		Category:        "Fiction",
		Description:     "A dystopian novel about totalitarianism and surveillance.",
		CoverURL:        "https://images.unsplash.com/photo-1518373714866-3f1478910cc0?w=300&h=400&fit=crop",
		PublishedYear:   1949,
		TotalCopies:     7,
		AvailableCopies: 5,
	},
	{
		ID:              "15",
		Title:           "Dune",
		Author:          "Frank Herbert",
		ISBN:            "978-0-441-17271-9",
		Category:        "Science Fiction",
		Description:     "A science fiction epic set on the desert planet Arrakis.",
		CoverURL:        "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=300&h=400&fit=crop",
		PublishedYear:   1965,
		TotalCopies:     4,
		AvailableCopies: 2,
	},
	{
		ID:              "16",
		Title:           "The Hitchhiker's Guide to the Galaxy",
		Author:          "Douglas Adams",
		ISBN:            "978-0-345-39180-3",
		Category:        "Science Fiction",
		Description:     "A comedic science fiction series about space travel and the meaning of life.",
		CoverURL:        "https://images.unsplash.com/photo-1532012197267-da84d127e765?w=300&h=400&fit=crop",
		PublishedYear:   1979,
		TotalCopies:     6,
		AvailableCopies: 4,
	},
	{
		ID:              "17",
		Title:           "The Lord of the Rings: The Fellowship of the Ring",
		Author:          "J.R.R. Tolkien",
		ISBN:            "978-0-547-92822-7",
		Category:        "Fantasy",
		Description:     "The first volume of the epic fantasy trilogy.",
		CoverURL:        "https://images.unsplash.com/photo-1518373714866-3f1478910cc0?w=300&h=400&fit=crop",
		PublishedYear:   1954,
		TotalCopies:     8,
		AvailableCopies: 5,
	},
	{
		ID:              "18",
		Title:           "The Hobbit",
		Author:          "J.R.R. Tolkien",
		ISBN:            "978-0-547-92822-7",
		Category:        "Fantasy",
		Description:     "A fantasy adventure novel that precedes The Lord of the Rings.",
		CoverURL:        "https://images.unsplash.com/photo-1518373714866-3f1478910cc0?w=300&h=400&fit=crop",
		PublishedYear:   1937,
		TotalCopies:     8,
		AvailableCopies: 6,
	},
	{
		ID:              "19",
		Title:           "The Lean Startup",
		Author:          "Eric Ries",
		ISBN:            "978-0-307-88789-4",
		Category:        "Business",
		Description:     "How constant innovation creates radically successful businesses.",
		CoverURL:        "https://images.unsplash.com/photo-1553484771-371a605b060b?w=300&h=400&fit=crop",
		PublishedYear:   2011,
		TotalCopies:     6,
		AvailableCopies: 3,
	},
	{
		ID:              "20",
		Title:           "Atomic Habits",
		Author:          "James Clear",
		ISBN:            "978-0-7352-1129-2",
		Category:        "Self-Help",
		Description:     "An easy and proven way to build good habits and break bad ones.",
		CoverURL:        "https://images.unsplash.com/photo-1544716278-ca5e3f4abd8c?w=300&h=400&fit=crop",
		PublishedYear:   2018,
		TotalCopies:     10,
		AvailableCopies: 7,
	},
	{
		ID:              "21",
		Title:           "Sapiens",
		Author:          "Yuval Noah Harari",
		ISBN:            "978-0-06-231609-7",
		Category:        "History",
		Description:     "A brief history of humankind.",
		CoverURL:        "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=300&h=400&fit=crop",
		PublishedYear:   2011,
		TotalCopies:     6,
		AvailableCopies: 4,
	},
	{
		ID:              "22",
		Title:           "Steve Jobs",
		Author:          "Walter Isaacson",
		ISBN:            "978-1-4516-4853-9",
		Category:        "Biography",
		Description:     "The exclusive biography of Steve Jobs.",
		CoverURL:        "https://images.unsplash.com/photo-1553729459-efe14ef6055d?w=300&h=400&fit=crop",
		PublishedYear:   2011,
		TotalCopies:     5,
		AvailableCopies: 2,
	},
	{
		ID:              "23",
		Title:           "Pride and Prejudice",
		Author:          "Jane Austen",
		ISBN:            "978-0-14-143951-8",
		Category:        "Romance",
		Description:     "A romantic novel of manners.",
		CoverURL:        "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=300&h=400&fit=crop",
		PublishedYear:   1813,
		TotalCopies:     4,
		AvailableCopies: 2,
	},
	{
		ID:              "24",
		Title:           "The Notebook",
		Author:          "Nicholas Sparks",
		ISBN:            "978-0-446-60523-4",
		Category:        "Romance",
		Description:     "A touching love story that spans decades.",
		CoverURL:        "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=300&h=400&fit=crop",
		PublishedYear:   1996,
		TotalCopies:     5,
		AvailableCopies: 3,
	},
}
